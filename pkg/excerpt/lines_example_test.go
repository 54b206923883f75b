package excerpt_test

import (
	"fmt"

	"github.com/dkoosis/exnote/pkg/excerpt"
)

func ExampleLines() {
	for _, line := range excerpt.Lines("4\n7", "4\n6") {
		fmt.Println(line)
	}
	// Output:
	// 4
	// 6
}

func ExampleLines_unified() {
	for _, line := range excerpt.Lines("a\nb\nc", "a\nB\nc") {
		fmt.Println(line)
	}
	// Output: B
}
