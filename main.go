/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "edutune/cmd"

func main() {
	cmd.Execute()
}
