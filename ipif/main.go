// Command ipif runs the IPIF interrupt self-test against simulated devices.
package main

import "github.com/sarchlab/ipif/ipif/cmd"

func main() {
	cmd.Execute()
}
