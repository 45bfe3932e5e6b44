// mofu is a note-taking widget for keirin race watching: slash-triggered
// autocomplete over rider and race data, structured extraction from plain
// text, full-text search, and optional sync through Google Drive.
package main

func main() {
	Execute()
}
