package codegen

import "strings"

// commonInitialisms are name segments rendered in all caps per Go convention.
var commonInitialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uri":  "URI",
	"api":  "API",
	"http": "HTTP",
	"json": "JSON",
	"uuid": "UUID",
	"ip":   "IP",
	"ts":   "TS",
}

// exportedName converts a snake_case definition name to an exported Go
// identifier: create_message_event -> CreateMessageEvent, room_id -> RoomID.
func exportedName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if up, ok := commonInitialisms[part]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// unexportedName converts a snake_case definition name to an unexported Go
// identifier: create_message_event -> createMessageEvent.
func unexportedName(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(part)
			first = false
			continue
		}
		if up, ok := commonInitialisms[part]; ok {
			b.WriteString(up)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
