package main

import (
	"github.com/Yehia404/Distributed-Web-Crawling-and-Indexing-System/internal/cli"
)

func main() {
	cli.ExecuteMaster()
}
