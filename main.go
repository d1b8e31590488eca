package main

import "forecast-recon/cmd"

func main() {
	cmd.Execute()
}
