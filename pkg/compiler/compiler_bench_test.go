package compiler

import (
	"testing"

	"hackvm/pkg/codegen"
	"hackvm/pkg/vm"
)

func benchUnits() []vm.Unit {
	return []vm.Unit{
		{Name: "Main", Source: mainSource},
		{Name: "Sys", Source: sysSource},
	}
}

// BenchmarkTranslate measures parse plus code generation.
func BenchmarkTranslate(b *testing.B) {
	units := benchUnits()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Translate(units, codegen.Options{Comments: true}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCompile adds assembly to the translation.
func BenchmarkCompile(b *testing.B) {
	units := benchUnits()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(units, codegen.Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
