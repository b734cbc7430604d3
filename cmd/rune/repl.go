package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ketiboldiais/amicus/pkg/ioctx"
	"github.com/ketiboldiais/amicus/pkg/rune"
)

const (
	promptMain = "rune> "
	promptCont = "  ... "
)

type repl struct {
	cfg     Config
	engine  *rune.Engine
	session *rune.Session
	out     io.Writer
}

func runREPL(cmd *cobra.Command, cfg Config) error {
	ctx := cmd.Context()

	cwd, _ := os.Getwd()
	engineCfg, err := loadConfig(cmd, cfg, cwd)
	if err != nil {
		return err
	}

	engine := rune.New(engineCfg)
	r := &repl{
		cfg:     cfg,
		engine:  engine,
		session: engine.NewSession(),
		out:     ioctx.Stdout(ctx),
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)
	ln.SetWordCompleter(r.complete)

	history := newReplHistory()
	history.Load(ln)
	defer history.Save(ln)

	r.println(welcomeStyle.Render("Rune REPL. Type :help for commands."))

	for {
		src, ok := r.read(ln)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		history.Add(ln, src)

		if strings.HasPrefix(trimmed, ":") {
			if quit := r.command(trimmed); quit {
				return nil
			}
			continue
		}
		r.eval(ctx, src)
	}
}

// read collects one input, prompting for continuation lines while the
// source so far ends mid-statement.
func (r *repl) read(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if b.Len() > 0 && errors.Is(err, liner.ErrPromptAborted) {
				return "", true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := rune.Parse(src); err != nil && incomplete(err) {
			continue
		}
		return src, true
	}
}

// incomplete reports whether err means more input could complete the
// source.
func incomplete(err error) bool {
	re := rune.AsError(err)
	switch re.Kind {
	case rune.SyntaxError:
		return strings.Contains(re.Message, "end of input")
	case rune.LexicalError:
		return strings.HasPrefix(re.Message, "unterminated")
	}
	return false
}

func (r *repl) eval(ctx context.Context, src string) {
	v, err := r.session.Eval(ctx, src)
	if err != nil {
		r.println(errorStyle.Render(rune.AsError(err).Error()))
		return
	}
	if _, isNil := v.(rune.NilValue); isNil {
		return
	}
	r.println(resultStyle.Render("=> " + v.String()))
}

func (r *repl) command(line string) (quit bool) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "h":
		r.println(dimStyle.Render(strings.Join([]string{
			":help            show this message",
			":quit            leave the REPL",
			":env             list global bindings",
			":reset           clear global bindings",
			":natives         list native functions",
			":tokens <src>    show the token stream of src",
			":ast <src>       show the syntax tree of src",
		}, "\n")))
	case "env":
		names := r.session.Globals().Names()
		if len(names) == 0 {
			r.println(dimStyle.Render("(no bindings)"))
		}
		for _, name := range names {
			v, _ := r.session.Globals().Get(name)
			r.println(fmt.Sprintf("%s %s", name, dimStyle.Render(": "+v.Type())))
		}
	case "reset":
		r.session = r.engine.NewSession()
		r.println(dimStyle.Render("environment cleared"))
	case "natives":
		rune.ForEachNative(func(d rune.NativeDef) {
			arity := fmt.Sprintf("%d", d.Arity)
			if d.Arity == rune.Variadic {
				arity = "n"
			}
			r.println(fmt.Sprintf("%-14s %s", d.Name+"/"+arity, dimStyle.Render(d.Doc)))
		})
	case "tokens":
		r.dump(arg, r.engine.Tokens)
	case "ast":
		r.dump(arg, r.engine.AST)
	default:
		r.println(errorStyle.Render(fmt.Sprintf("unknown command :%s. Type :help for commands.", name)))
	}
	return false
}

func (r *repl) dump(src string, fn func(string) (string, error)) {
	out, err := fn(src)
	if err != nil {
		r.println(errorStyle.Render(rune.AsError(err).Error()))
		return
	}
	r.println(strings.TrimRight(out, "\n"))
}

func (r *repl) println(s string) {
	fmt.Fprintln(r.out, paint(r.cfg, s))
}

// complete offers keywords, natives, REPL commands and global names for
// the word under the cursor.
func (r *repl) complete(line string, pos int) (head string, completions []string, tail string) {
	head, word := splitWord(line[:pos])
	tail = line[pos:]
	if word == "" {
		return head, nil, tail
	}

	var candidates []string
	if strings.HasPrefix(word, ":") {
		for _, c := range []string{"help", "quit", "env", "reset", "natives", "tokens", "ast"} {
			candidates = append(candidates, ":"+c)
		}
	} else {
		candidates = append(candidates, rune.Keywords()...)
		rune.ForEachNative(func(d rune.NativeDef) { candidates = append(candidates, d.Name) })
		candidates = append(candidates, r.session.Globals().Names()...)
	}

	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			completions = append(completions, c)
		}
	}
	sort.Strings(completions)
	return head, completions, tail
}

func splitWord(s string) (head, word string) {
	i := len(s) - 1
	for i >= 0 && isWordByte(s[i]) {
		i--
	}
	return s[:i+1], s[i+1:]
}

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == ':'
}
