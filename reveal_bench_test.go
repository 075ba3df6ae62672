package textbox

import (
	"strings"
	"testing"
)

// benchDialogue is a long multi-speaker script exercising wraps, forced
// breaks and shifts.
var benchDialogue = strings.Repeat("The quick brown fox jumps over the lazy dog.|It keeps running.\n", 20)

func BenchmarkCompile(b *testing.B) {
	b.Run("Short", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Compile("Hello!\nHow are you?")
		}
	})

	b.Run("Dialogue", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Compile(benchDialogue)
		}
	})
}

func BenchmarkReveal(b *testing.B) {
	b.Run("Markers", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Reveal(benchDialogue)
		}
	})

	b.Run("Plain", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = Reveal(benchDialogue, WithoutMarkers())
		}
	})
}

// BenchmarkNext measures stepping alone, without compilation.
func BenchmarkNext(b *testing.B) {
	events, err := Compile(benchDialogue)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		box := FromEvents(events)
		for _, ok := box.Next(); ok; _, ok = box.Next() {
		}
	}
}

func BenchmarkCount(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Count(benchDialogue)
	}
}
