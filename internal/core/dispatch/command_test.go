package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/hay-kot/steward/pkg/executil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want Result
	}{
		{"json success", `{"success": true, "message": "sent"}`, Result{Success: true, Message: "sent"}},
		{"json failure", `{"success": false, "message": "quota"}`, Result{Success: false, Message: "quota"}},
		{"json without success key", `{"message": "hi"}`, Result{Success: true, Message: `{"message": "hi"}`}},
		{"plain text", "queued\n  id 42\n", Result{Success: true, Message: "queued id 42"}},
		{"empty", "", Result{Success: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseResult([]byte(tt.out)))
		})
	}
}

func TestCommandSender(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{"mailer": []byte(`{"success":true,"message":"delivered"}`)},
	}
	s := &CommandSender{Command{Template: "mailer --to {{ shq .To }} --subject {{ shq .Subject }}", Exec: exec}}

	res, err := s.Send(context.Background(), Message{To: "a@b.c", Subject: "it's done", Body: "hello"})
	require.NoError(t, err)
	assert.Equal(t, Result{Success: true, Message: "delivered"}, res)

	require.Len(t, exec.Commands, 1)
	assert.Equal(t, `mailer --to 'a@b.c' --subject 'it'\''s done'`, exec.Commands[0].Cmd)
	assert.Equal(t, "hello", exec.Commands[0].Stdin)
}

func TestCommandPublisher_Error(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Errors: map[string]error{"poster": errors.New("exit status 1")},
	}
	p := &CommandPublisher{Command{Template: "poster", Exec: exec}}

	_, err := p.Publish(context.Background(), Post{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestCommandPayer_TemplateError(t *testing.T) {
	p := &CommandPayer{Command{Template: "pay {{ .Missing }}", Exec: &executil.RecordingExecutor{}}}

	_, err := p.Pay(context.Background(), Payment{Amount: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render command")
}

func TestCommandPayer_RendersAmount(t *testing.T) {
	exec := &executil.RecordingExecutor{}
	p := &CommandPayer{Command{Template: "pay --id {{ .ID }} --amount {{ money .Amount }}", Exec: exec}}

	res, err := p.Pay(context.Background(), Payment{ID: "INV_1", Amount: 99.5})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "pay --id INV_1 --amount 99.50", exec.Commands[0].Cmd)
}
