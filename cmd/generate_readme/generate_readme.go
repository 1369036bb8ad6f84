package main

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/keshon/verskeep/internal/command"
	_ "github.com/keshon/verskeep/internal/command/all"
)

func main() {
	tplBytes, err := os.ReadFile("README.md.tmpl")
	if err != nil {
		fmt.Printf("Failed to read template: %v\n", err)
		os.Exit(1)
	}

	tpl, err := template.New("readme").Parse(string(tplBytes))
	if err != nil {
		fmt.Printf("Failed to parse template: %v\n", err)
		os.Exit(1)
	}

	var sections strings.Builder
	for _, cmd := range command.AllCommands() {
		writeSection(&sections, "", cmd)
	}

	data := map[string]string{
		"CommandSections": sections.String(),
	}

	outFile, err := os.Create("README.md")
	if err != nil {
		fmt.Printf("Failed to create README.md: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	if err := tpl.Execute(outFile, data); err != nil {
		fmt.Printf("Failed to render template: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("README.md generated successfully")
}

func writeSection(b *strings.Builder, parent string, cmd command.Command) {
	name := strings.TrimSpace(parent + " " + cmd.Name())
	fmt.Fprintf(b, "### %s\n```\nverskeep %s\n\n%s\n```\n\n", name, strings.TrimSpace(parent+" "+cmd.Usage()), cmd.Help())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(b, "Aliases: `%s`\n\n", strings.Join(aliases, "`, `"))
	}
	for _, sub := range cmd.Subcommands() {
		writeSection(b, name, sub)
	}
}
