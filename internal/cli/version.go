package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/build"
)

func newVersionCmd(process string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version and exit.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", process, build.FullVersion())
		},
	}
}

func init() {
	masterCmd.AddCommand(newVersionCmd("master"))
	crawlWorkerCmd.AddCommand(newVersionCmd("crawlworker"))
	indexWorkerCmd.AddCommand(newVersionCmd("indexworker"))
}
