package prompt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Digital-Shane/tvshelf/internal/console"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/google/go-cmp/cmp"
)

func sendKey(tm *teatest.TestModel, key tea.KeyType) {
	tm.Send(tea.KeyMsg{Type: key})
}

func sendRune(tm *teatest.TestModel, r rune) {
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func testTheme() console.Theme {
	theme := console.DefaultTheme()
	theme.Icons = console.IconSet{console.KindWarning: "[?]"}
	return theme
}

func TestPromptAnswers(t *testing.T) {
	tests := []struct {
		name string
		send func(tm *teatest.TestModel)
		want bool
	}{
		{name: "y", send: func(tm *teatest.TestModel) { sendRune(tm, 'y') }, want: true},
		{name: "Y", send: func(tm *teatest.TestModel) { sendRune(tm, 'Y') }, want: true},
		{name: "n", send: func(tm *teatest.TestModel) { sendRune(tm, 'n') }, want: false},
		{name: "enter defaults to no", send: func(tm *teatest.TestModel) { sendKey(tm, tea.KeyEnter) }, want: false},
		{name: "escape", send: func(tm *teatest.TestModel) { sendKey(tm, tea.KeyEsc) }, want: false},
		{name: "other keys ignored", send: func(tm *teatest.TestModel) {
			sendRune(tm, 'x')
			sendKey(tm, tea.KeySpace)
			sendRune(tm, 'y')
		}, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newModel("Add to list", "https://catalog.test/1", testTheme())
			tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 10))
			tc.send(tm)
			tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

			final, ok := tm.FinalModel(t).(model)
			if !ok {
				t.Fatalf("final model has type %T", tm.FinalModel(t))
			}
			if !final.answered || final.answer != tc.want {
				t.Errorf("answer = %v (answered %v), want %v", final.answer, final.answered, tc.want)
			}
		})
	}
}

func TestPromptShowsQuestionAndDetail(t *testing.T) {
	m := newModel("Map 'Show' to show 'Show (2019)' with ID 42", "https://catalog.test/42", testTheme())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 10))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("with ID 42")) && bytes.Contains(out, []byte("https://catalog.test/42"))
	}, teatest.WithDuration(2*time.Second))

	sendRune(tm, 'n')
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

func TestViewAfterAnswer(t *testing.T) {
	t.Parallel()
	m := newModel("Add to list", "", testTheme())
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	if cmd == nil {
		t.Fatal("answering should quit the program")
	}
	view := updated.View()
	if !strings.Contains(view, "Add to list") || !strings.Contains(view, "yes") {
		t.Errorf("View() = %q", view)
	}
	if strings.Contains(view, "[y/N]") {
		t.Errorf("hint should disappear after answering: %q", view)
	}

	again, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if cmd != nil || !again.(model).answer {
		t.Error("answer should not change once given")
	}
}

func TestTerminalConfirm(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(WithIO(strings.NewReader("y"), &out), WithTheme(testTheme()))
	if !term.Confirm("Add to list", "https://catalog.test/7") {
		t.Errorf("Confirm() = false, output:\n%s", out.String())
	}
}

func TestScriptedAndNever(t *testing.T) {
	t.Parallel()
	s := &Scripted{Answers: []bool{false, true}}
	got := []bool{s.Confirm("a", ""), s.Confirm("b", ""), s.Confirm("c", "")}
	if diff := cmp.Diff([]bool{false, true, false}, got); diff != "" {
		t.Errorf("answers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, s.Asked); diff != "" {
		t.Errorf("asked mismatch (-want +got):\n%s", diff)
	}
	if (Never{}).Confirm("anything", "") {
		t.Error("Never should decline")
	}
}
