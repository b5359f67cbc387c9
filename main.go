package main

import "github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/cmd"

func main() {
	cmd.Execute()
}
