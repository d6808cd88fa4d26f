// Loader test fixture: exports NewPlugin with the wrong type.
package main

func NewPlugin() int { return 0 }

func main() {}
