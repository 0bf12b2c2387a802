package config

//
// example.go
// Copyright (C) 2026 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

// Example is a documented starting-point configuration, printed by
// `go-trss config example`.
const Example = `{
    "default_directory": "/tmp",
    "default_command": ["transmission-remote", "--add", "$URL"],
    "default_command_shell_enabled": false,
    "default_user_agent": "go-trss",
    "replace_windows_forbidden_characters": false,
    "feeds": {
        "example feed": {
            "url": "https://example.com/rss",
            "user_agent": "",
            "prefer_torrent_url": true,
            "hide_torrent_filename": true,
            "subscriptions": {
                "example show": {
                    "pattern": "Example Show S(?P<series>[0-9]{2})E(?P<episode>[0-9]{2})",
                    "series_number": 1,
                    "episode_number": 0,
                    "directory": "",
                    "command": [],
                    "use_shell_for_command": false
                }
            }
        }
    }
}
`
