package main

import "github.com/Kreijstal/circuijts/cmd/circuijts/cmd"

func main() {
	cmd.Execute()
}
