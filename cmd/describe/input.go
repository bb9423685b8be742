package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nachoal/describe-go/describe"
)

// readItems loads each path in order. "-" reads stdin, at most once.
func readItems(paths []string, stdin io.Reader) ([]describe.Content, error) {
	items := make([]describe.Content, 0, len(paths))
	usedStdin := false
	for _, path := range paths {
		if path == "-" {
			if usedStdin {
				return nil, fmt.Errorf("stdin (-) can only be read once")
			}
			usedStdin = true
			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			items = append(items, describe.Content(data))
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		items = append(items, describe.Content(data))
	}
	return items, nil
}
