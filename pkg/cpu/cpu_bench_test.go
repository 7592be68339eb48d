package cpu

import "testing"

// BenchmarkCPU_CountLoop measures Step throughput on a loop that counts
// RAM[0] down from 1000.
func BenchmarkCPU_CountLoop(b *testing.B) {
	program := []uint16{
		0,                              // @0
		EncodeC(compMMinus1, dM|dD, 0), // MD=M-1
		0,                              // @0
		EncodeC(compD, 0, jJGT),        // D;JGT
		4,                              // (END) @END
		EncodeC(compZero, 0, jJMP),     // 0;JMP
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewCPU()
		if err := c.Load(program); err != nil {
			b.Fatal(err)
		}
		c.RAM[0] = 1000
		c.Run()
	}
}
