// Loader test fixture: a valid shared object that exports no factory symbol.
package main

func main() {}
