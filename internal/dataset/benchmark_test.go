package dataset

import (
	"fmt"
	"testing"
)

// ============================================================================
// Cell Conversion Benchmarks
// ============================================================================

// BenchmarkParseNumber benchmarks numeric string conversion.
// Every cell of every source passes through it.
func BenchmarkParseNumber(b *testing.B) {
	testCases := []string{
		"123",
		"-456.78",
		"$1,234.56",
		"(123.45)",     // Accounting negative
		"1,234,567.89", // Thousands separators
		"  999.99  ",   // Whitespace
		"€1234.56",     // Euro
		"Canada",       // Not a number
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumber(tc)
		}
	}
}

// BenchmarkParseNumber_Simple benchmarks the most common case: plain decimals.
func BenchmarkParseNumber_Simple(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseNumber("6.541")
	}
}

// BenchmarkParseCell benchmarks full cell typing including NA tokens.
func BenchmarkParseCell(b *testing.B) {
	testCases := []string{"6.541", "", "NA", "United States", `="0042"`, "n/a"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseCell(tc)
		}
	}
}

// BenchmarkInferColumnType benchmarks type resolution over a numeric column.
func BenchmarkInferColumnType(b *testing.B) {
	t := NewTable("bench", KeyColumn, "x")
	for i := 0; i < 1000; i++ {
		t.Append(Row{KeyColumn: Text(fmt.Sprintf("c%d", i)), "x": Text(fmt.Sprintf("%d.5", i))})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		InferColumnType(t, "x")
	}
}

// BenchmarkMean benchmarks the order-independent mean.
func BenchmarkMean(b *testing.B) {
	xs := make([]float64, 1000)
	for i := range xs {
		xs[i] = float64((i * 7919) % 1000)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Mean(xs)
	}
}
