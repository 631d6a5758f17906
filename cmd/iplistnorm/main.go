// Command iplistnorm normalizes, serializes, and validates lists of IPv4
// addresses, CIDR blocks, and ranges.
package main

import "iplistnorm/internal/cli"

func main() {
	cli.Execute()
}
