// Command forecastchat is a terminal client for a supply chain forecast server.
package main

import "github.com/diogo/forecastchat/internal/commands"

func main() {
	commands.Execute()
}
