package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/auth"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/util"
)

// hashpass gera a entrada de OPERATORS para um operador.
func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: hashpass <nome do operador> <senha>")
		os.Exit(1)
	}

	name := strings.TrimSpace(os.Args[1])
	password := os.Args[2]
	if err := util.RequireString(name, "nome"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if strings.ContainsAny(name, "|;") {
		fmt.Fprintln(os.Stderr, "nome não pode conter | ou ;")
		os.Exit(1)
	}
	if err := util.ValidatePassword(password); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s|%s\n", name, hash)
}
