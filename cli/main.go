package main

//
// main.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"gitlab.com/kabes/go-trss/internal/cli"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cli.Main()
}
