package model

//
// entry.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

// TorrentMimetype identify a link as a direct torrent-file link.
const TorrentMimetype = "application/x-bittorrent"

// Entry is one item of a fetched feed document, decoupled from the feed
// parser. Index is the position in the document as published (0 = newest).
type Entry struct {
	Title      string
	Link       string
	Index      int
	Enclosures []Enclosure
}

type Enclosure struct {
	URL  string
	Type string
}
