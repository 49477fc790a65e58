package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/markaz/report-assistant/internal/deploy"
)

func main() {
	dir := flag.String("dir", ".", "Repository directory to deploy")
	flag.Parse()

	d := deploy.New(*dir, os.Stdout)
	if err := d.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
