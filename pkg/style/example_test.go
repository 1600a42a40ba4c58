package style_test

import (
	"fmt"

	"github.com/inklet/inklet/pkg/style"
)

func ExampleParse() {
	st, _ := style.Parse("rounded=0;whiteSpace=wrap;html=1")

	v, _ := st.Get("whiteSpace")
	fmt.Println("whiteSpace:", v)
	fmt.Println("entries:", st.Len())
	fmt.Println("round-trip:", st.String())
	// Output:
	// whiteSpace: wrap
	// entries: 3
	// round-trip: rounded=0;whiteSpace=wrap;html=1
}

func ExampleStyle_Set() {
	st, _ := style.Parse("rounded=0;html=1")
	st.Set("fillColor", "#dae8fc")

	fmt.Println(st.String())
	// Output:
	// rounded=0;html=1;fillColor=#dae8fc
}

func ExampleOpaque() {
	// Input that fails to parse is retained verbatim instead of dropped.
	raw := `broken\`
	if _, err := style.Parse(raw); err != nil {
		st := style.Opaque(raw)
		fmt.Println(st.IsOpaque(), st.String() == raw)
	}
	// Output:
	// true true
}
