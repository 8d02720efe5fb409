package main

import "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/cmd"

func main() {
	cmd.Execute()
}
