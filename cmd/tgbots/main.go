// Command tgbots connects the configured Telegram bots and runs their
// polling loops.
package main

func main() {
	Execute()
}
