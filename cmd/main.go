package main

import (
	"fmt"

	"github.com/ostafen/partlet/cmd/cmd"
	"github.com/ostafen/partlet/internal/env"
)

func main() {
	PrintLogo()

	_ = cmd.Execute()
}

func PrintLogo() {
	fmt.Println("                 _   _      _   ")
	fmt.Println(" _ __   __ _ _ _| |_| | ___| |_ ")
	fmt.Println("| '_ \\ / _` | '__| __| |/ _ \\ __|")
	fmt.Println("| |_) | (_| | |  | |_| |  __/ |_ ")
	fmt.Println("| .__/ \\__,_|_|   \\__|_|\\___|\\__|")
	fmt.Println("|_|                             ")
	fmt.Println()
	fmt.Println("Partition table inspection tool")
	fmt.Println()
	fmt.Printf("Version:   %s\n", env.Version)
	fmt.Printf("Commit:    %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
	fmt.Println(" ")
}
