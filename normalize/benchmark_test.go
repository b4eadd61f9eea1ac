package normalize

import (
	"strings"
	"testing"
)

func BenchmarkNormalize(b *testing.B) {
	section := "#Motion\n\n* speed is __fast__ and _slow_\n\n<PhysicsSimulator type=\"pendulum\" />\n\n```  go\nx := 1   \n```\n\n\n\n"
	input := strings.Repeat(section, 50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(input)
	}
}

func BenchmarkNormalizeUnclosedTags(b *testing.B) {
	input := strings.Repeat("<Note>\n", 20000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(input)
	}
}

func BenchmarkNormalizeUnmatchedDelimiters(b *testing.B) {
	input := strings.Repeat("_a ", 20000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(input)
	}
}
