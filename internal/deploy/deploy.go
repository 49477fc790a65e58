package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Failure categories the CLI maps to exit codes.
var (
	ErrNoRepository = errors.New("no git repository")
	ErrNoRemote     = errors.New("no git remote configured")
)

// Deployer stages, commits and pushes the working tree to the configured
// remote. It shells out to git; nothing here is specific to the hosting
// platform beyond "push deploys".
type Deployer struct {
	Dir string
	Out io.Writer
	// Now is swappable for deterministic commit messages in tests.
	Now func() time.Time
}

func New(dir string, out io.Writer) *Deployer {
	return &Deployer{
		Dir: dir,
		Out: out,
		Now: time.Now,
	}
}

// Run performs the deployment. Preconditions are checked before anything is
// staged: a missing repository or remote aborts with a remediation message
// and a typed error.
func (d *Deployer) Run(ctx context.Context) error {
	if _, err := d.git(ctx, "rev-parse", "--git-dir"); err != nil {
		fmt.Fprintf(d.Out, "Error: no git repository found in %s.\n", d.Dir)
		fmt.Fprintln(d.Out, "Run 'git init' and commit your files before deploying.")
		return ErrNoRepository
	}

	remotes, err := d.git(ctx, "remote")
	if err != nil || strings.TrimSpace(remotes) == "" {
		fmt.Fprintln(d.Out, "Error: no git remote configured.")
		fmt.Fprintln(d.Out, "Add one with 'git remote add origin <url>' before deploying.")
		return ErrNoRemote
	}
	remote := firstLine(remotes)

	if _, err := d.git(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}

	status, err := d.git(ctx, "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("check working tree: %w", err)
	}

	if strings.TrimSpace(status) == "" {
		fmt.Fprintln(d.Out, "Nothing to commit; pushing current state.")
	} else {
		message := fmt.Sprintf("Deploy: %s", d.Now().Format("2006-01-02 15:04:05"))
		if _, err := d.git(ctx, "commit", "-m", message); err != nil {
			return fmt.Errorf("create commit: %w", err)
		}
		fmt.Fprintf(d.Out, "Created commit %q.\n", message)
	}

	branch, err := d.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return fmt.Errorf("resolve current branch: %w", err)
	}
	branch = firstLine(branch)

	if _, err := d.git(ctx, "push", remote, branch); err != nil {
		return fmt.Errorf("push to %s/%s: %w", remote, branch, err)
	}

	fmt.Fprintf(d.Out, "Deployment pushed to %s/%s.\n", remote, branch)
	return nil
}

func (d *Deployer) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
