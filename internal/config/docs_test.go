package config

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envAssignmentRe = regexp.MustCompile(`(?m)^([A-Z][A-Z0-9_]+)=`)

func documentedEnvNames(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "documentation file must exist")

	seen := map[string]bool{}
	var names []string
	for _, m := range envAssignmentRe.FindAllStringSubmatch(string(data), -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// The README's deployment-secrets block and the migration guide's
// configuration block document the same variable set; a rename in one
// without the other strands whoever follows the stale copy.
func TestDeploymentDocsAgreeOnEnvNames(t *testing.T) {
	root := filepath.Join("..", "..")

	readme := documentedEnvNames(t, filepath.Join(root, "README.md"))
	migration := documentedEnvNames(t, filepath.Join(root, "docs", "MIGRATION.md"))

	require.NotEmpty(t, readme)
	assert.Equal(t, readme, migration)
}

func TestDocsNameTheRequiredVariables(t *testing.T) {
	readme := documentedEnvNames(t, filepath.Join("..", "..", "README.md"))

	assert.Contains(t, readme, "AZURE_OPENAI_API_KEY")
	assert.Contains(t, readme, "AZURE_OPENAI_ENDPOINT")
	assert.Contains(t, readme, "DB_PATH")
	assert.Contains(t, readme, "ACCESS_PASSWORD")
	assert.Contains(t, readme, "ENVIRONMENT")
}
