package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Zacy-Sokach/BookingAssistant/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

var (
	Version = "dev"
)

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

func main() {
	// 添加panic恢复
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("程序发生panic: %v\n", r)
			fmt.Println("堆栈跟踪:")
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	if err := cli.NewRootCmd(Version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("错误: "+err.Error()))
		os.Exit(1)
	}
}
