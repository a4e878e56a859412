// ABOUTME: Colors shared by CLI output

package main

import "github.com/fatih/color"

var (
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
	faint  = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)
)
