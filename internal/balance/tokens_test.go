package balance

import "testing"

func TestStripComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "no comments",
			line: `<div className="row">`,
			want: `<div className="row">`,
		},
		{
			name: "line comment removed",
			line: `  // <div> should be ignored`,
			want: `  `,
		},
		{
			name: "trailing line comment removed",
			line: `<div> // </div>`,
			want: `<div> `,
		},
		{
			name: "jsx block comment removed",
			line: `{/* <div> */}<span/>`,
			want: `<span/>`,
		},
		{
			name: "block comments are non-greedy",
			line: `{/* a */}<div>{/* b */}`,
			want: `<div>`,
		},
		{
			name: "unterminated block comment kept",
			line: `{/* <div>`,
			want: `{/* <div>`,
		},
		{
			name: "plain block comment without braces kept",
			line: `/* <div> */`,
			want: `/* <div> */`,
		},
		{
			name: "url inside string is cut like any line comment",
			line: `<a href="https://example.com"><div>`,
			want: `<a href="https:`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StripComments(tt.line); got != tt.want {
				t.Errorf("StripComments(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestCountOpenings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want int
	}{
		{`<div>`, 1},
		{`<div`, 1},
		{`<div className="a">`, 1},
		{`<div/>`, 1},
		{`<div><div>`, 2},
		{`<divider>`, 0},
		{`<div2>`, 0},
		{`<DIV>`, 0},
		{`</div>`, 0},
		{`<div-x>`, 1},
		{`<div_x>`, 1},
		{"<div\t>", 1},
		{`<divé>`, 1},
		{``, 0},
	}

	for _, tt := range tests {
		if got := CountOpenings(tt.line); got != tt.want {
			t.Errorf("CountOpenings(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestCountClosings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want int
	}{
		{`</div>`, 1},
		{`</div`, 1},
		{`</div></div>`, 2},
		{`</divider>`, 0},
		{`<div>`, 0},
		{`</div >`, 1},
		{`</div1>`, 0},
	}

	for _, tt := range tests {
		if got := CountClosings(tt.line); got != tt.want {
			t.Errorf("CountClosings(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	tokens := Tokens(`</div><div><divider></div>`)
	want := []TokenKind{Closing, Opening, Closing}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: expected %s, got %s", i, kind, tokens[i].Kind)
		}
	}
	if tokens[0].Offset != 0 || tokens[1].Offset != 6 {
		t.Errorf("unexpected offsets %d, %d", tokens[0].Offset, tokens[1].Offset)
	}
}
