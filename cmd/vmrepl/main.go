// Command vmrepl translates VM commands interactively.
package main

import (
	"flag"
	"log"

	"hackvm/pkg/codegen"
	"hackvm/pkg/repl"
)

func main() {
	log.SetPrefix("vmrepl: ")
	log.SetFlags(0)

	unit := flag.String("unit", "Repl", "translation unit name used for statics and labels")
	comments := flag.Bool("comments", false, "echo each command as a comment before its code")
	levelName := flag.String("level", "functions", "protocol level: stack, branching or functions")
	flag.Parse()

	level, err := codegen.ParseLevel(*levelName)
	if err != nil {
		log.Fatal(err)
	}
	repl.REPL(*unit, codegen.Options{Comments: *comments, Level: level})
}
