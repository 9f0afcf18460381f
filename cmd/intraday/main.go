// Command intraday streams market and private data from the intraday
// gateway and logs what it receives.
package main

func main() {
	Execute()
}
