package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/slotarena/internal/cli"
)

func Test_Repl_Script_Rejects_Stale_Key_When_Slot_Reused(t *testing.T) {
	t.Parallel()

	tests := []struct {
		engine   string
		first    string
		reused   string
		otherKey string
	}{
		{engine: "hop", first: "1v1", reused: "1v3", otherKey: "2v1"},
		{engine: "sparse", first: "0v1", reused: "0v3", otherKey: "1v1"},
		{engine: "dense", first: "0v1", reused: "0v3", otherKey: "1v1"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			script := strings.Join([]string{
				"insert alpha",
				"insert beta",
				"remove " + tt.first,
				"insert gamma",
				"get " + tt.first,
				"get " + tt.reused,
				"raw " + strings.Split(tt.first, "v")[0],
				"len",
				"validate",
				"exit",
				"insert never",
			}, "\n")

			stdout, stderr, exitCode := c.RunWithInput(script, "--engine", tt.engine, "repl")
			if exitCode != 0 {
				t.Fatalf("exitCode=%d stderr=%s", exitCode, stderr)
			}

			want := strings.Join([]string{
				tt.first,
				tt.otherKey,
				"removed alpha",
				tt.reused,
				"gamma",
				"gamma",
				"2",
				"ok",
			}, "\n") + "\n"

			if stdout != want {
				t.Errorf("stdout=%q, want=%q", stdout, want)
			}

			cli.AssertContains(t, stderr, "no live value for key: "+tt.first)
		})
	}
}

func Test_Repl_Script_Reports_Errors_And_Continues(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	script := "get 9v9\nfly\ninsert\ninsert x\nls\n"

	stdout, stderr, exitCode := c.RunWithInput(script, "--engine", "sparse", "repl")
	if exitCode != 0 {
		t.Fatalf("exitCode=%d stderr=%s", exitCode, stderr)
	}

	cli.AssertContains(t, stderr, "unknown key")
	cli.AssertContains(t, stderr, "unknown command")
	cli.AssertContains(t, stderr, "usage: insert <value>")
	cli.AssertContains(t, stdout, "0v1\tx")
}

func Test_Repl_Script_Drains_Matching_Values(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	script := "insert keep-1\ninsert drop-1\ninsert keep-2\ninsert drop-2\ndrain drop\nlen\nretain 2\nrev\n"

	stdout, stderr, exitCode := c.RunWithInput(script, "--engine", "hop", "--version", "tiny", "repl")
	if exitCode != 0 {
		t.Fatalf("exitCode=%d stderr=%s", exitCode, stderr)
	}

	want := "1v1\n2v1\n3v1\n4v1\ndrop-1\ndrop-2\n2\nremoved 1\n3v1\tkeep-2\n"
	if stdout != want {
		t.Errorf("stdout=%q, want=%q", stdout, want)
	}
}

func Test_Walkthrough_Succeeds_When_Run_On_Every_Engine(t *testing.T) {
	t.Parallel()

	for _, engine := range []string{"sparse", "hop", "dense"} {
		for _, ver := range []string{"default", "tiny", "unversioned"} {
			t.Run(engine+"/"+ver, func(t *testing.T) {
				t.Parallel()

				c := cli.NewCLI(t)
				stdout := c.MustRun("--engine", engine, "--version", ver, "walkthrough")

				cli.AssertContains(t, stdout, "insert 900")
				cli.AssertContains(t, stdout, "remove ")
				cli.AssertContains(t, stdout, "\nok")
			})
		}
	}
}

func Test_Bench_Prints_Every_Phase_When_Run(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("bench", "-n", "500", "--all")

	for _, phase := range []string{"insert", "get", "iterate", "remove", "refill", "drain", "total"} {
		cli.AssertContains(t, stdout, "  "+phase)
	}

	for _, engine := range []string{"sparse/default", "hop/default", "dense/default"} {
		cli.AssertContains(t, stdout, engine+"  n=500")
	}
}

func Test_Bench_Fails_When_Count_Not_Positive(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("bench", "-n", "0")

	cli.AssertContains(t, stderr, "count must be positive")
}

func Test_Check_Passes_For_Every_Target_When_Engines_Correct(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("check", "--ops", "300", "--runs", "2", "--seed", "11", "-j", "4")

	lines := strings.Split(stdout, "\n")
	if got, want := len(lines), 9; got != want {
		t.Fatalf("lines=%d, want=%d\n%s", got, want, stdout)
	}

	if !strings.HasPrefix(lines[0], "ok  sparse/default") {
		t.Errorf("first line=%q, want sparse/default first", lines[0])
	}

	for _, line := range lines {
		cli.AssertContains(t, line, "runs=2")
	}
}

func Test_Check_Uses_Config_When_Flags_Absent(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteConfig(`{"check_ops": 50, "seed": 3}`)

	stdout := c.MustRun("check", "--runs", "1")
	cli.AssertContains(t, stdout, "ok  hop/tiny")
}
