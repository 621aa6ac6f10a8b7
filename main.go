package main

import "github.com/iksnae/webui-metrics/cmd"

func main() {
	cmd.Execute()
}
