package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/robertkrimen/isatty"

	mmcheck "mmcheck/pkg"
)

var url = flag.String("url", "ws://localhost:9000/ws", "URL of mmcheck server to connect to")

func main() {
	// get cmdline flags
	flag.Parse()

	// connect to server
	client, connErr := mmcheck.NewClient(*url)
	if connErr != nil {
		fmt.Println("couldn't connect:", connErr)
		os.Exit(1)
	}
	defer client.Close()

	// check if is TTY
	isInputTty := isatty.Check(os.Stdin.Fd())

	if isInputTty {
		fmt.Println("mmcheck shell")
		fmt.Println("\\h for help")
	}

	// initialize readline
	prompt := ""
	if isInputTty {
		prompt = fmt.Sprintf("%s> ", *url)
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       "/tmp/.mmcheck-history",
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	for {
		line, readlineErr := l.Readline()
		if readlineErr != nil {
			fmt.Println("bye!")
			os.Exit(0)
		}

		if line == `\h` {
			fmt.Println(`\h                          help`)
			fmt.Println(`\l                          list environments (same as LIST)`)
			fmt.Println(`\c NAME PROOF.mmb [SPEC.mm0]  check a proof file from disk`)
			fmt.Println(`other input is sent to the server as a statement`)
			continue
		}
		if line == `\l` {
			runStatement(client, "LIST")
			continue
		}
		if strings.HasPrefix(line, `\c `) {
			checkFiles(client, strings.Fields(line[3:]))
			continue
		}

		if len(strings.Trim(line, "\t ")) == 0 {
			continue
		}

		runStatement(client, line)
	}
}

func checkFiles(client *mmcheck.Client, args []string) {
	if len(args) != 2 && len(args) != 3 {
		fmt.Println(`usage: \c NAME PROOF.mmb [SPEC.mm0]`)
		return
	}
	proof, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	spec := ""
	if len(args) == 3 {
		specBytes, err := os.ReadFile(args[2])
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		spec = string(specBytes)
	}
	ack, err := client.CheckProof(args[0], proof, spec)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("ack", ack)
}

func runStatement(client *mmcheck.Client, stmt string) {
	channel := client.Statement(stmt)
	firstUpdate := <-channel.Updates
	printMessage(channel, firstUpdate)
	go handleMessages(channel)
}

func handleMessages(channel *mmcheck.ClientChannel) {
	for message := range channel.Updates {
		printMessage(channel, message)
	}
}

func printMessage(channel *mmcheck.ClientChannel, msg *mmcheck.MessageToClient) {
	fmt.Printf("chan %d: ", channel.StatementID)
	if msg.AckMessage != nil {
		fmt.Println("ack", *msg.AckMessage)
		return
	}
	if msg.ErrorMessage != nil {
		fmt.Println("error", *msg.ErrorMessage)
		return
	}
	if msg.InitialResultMessage != nil {
		if msg.InitialResultMessage.Listing != "" {
			fmt.Println("init:")
			fmt.Println(msg.InitialResultMessage.Listing)
			return
		}
		printJSON("init", msg.InitialResultMessage)
		return
	}
	if msg.EnvUpdateMessage != nil {
		printJSON("env_update", msg.EnvUpdateMessage)
		return
	}
}

func printJSON(tag string, thing interface{}) {
	indented, _ := json.MarshalIndent(thing, "", "  ")
	fmt.Printf("%s:\n%s\n", tag, indented)
}
