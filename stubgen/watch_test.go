package stubgen

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	assert.True(t, relevant("src/Base/VectorPy.xml"))
	assert.True(t, relevant("src/Base/VectorPyImp.cpp"))
	assert.True(t, relevant("src/Gui/MainWindow.h"))
	assert.False(t, relevant("src/Base/CMakeLists.txt"))
	assert.False(t, relevant("src/Base/VectorPy.xml.swp"))
}

func TestWatch_RegeneratesOnChange(t *testing.T) {
	src := sampleTree(t)
	p := newProject(t, src)

	reports := make(chan *Report, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, func(r *Report, err error) {
			if err == nil {
				reports <- r
			}
		})
	}()

	select {
	case r := <-reports:
		assert.Equal(t, 3, r.Classes)
	case <-time.After(10 * time.Second):
		t.Fatal("no initial report")
	}

	// The watcher is registered before the first run, so this write is seen.
	writeTree(t, src, map[string]string{"Mod/Sample/App/BrokenPy.xml": persistenceXMLAs("BrokenPy")})

	select {
	case r := <-reports:
		assert.Equal(t, 0, r.Failed)
		assert.Equal(t, 4, r.Classes)
	case <-time.After(10 * time.Second):
		t.Fatal("no report after change")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	_, err := os.Stat(filepath.Join(p.OutputDir, "Sample", "__init__.pyi"))
	require.NoError(t, err)
}

// persistenceXMLAs declares a parameterless class named after name.
func persistenceXMLAs(name string) string {
	return `<GenerateModel><PythonExport Father="PyObjectBase" Name="` + name + `" Namespace="Sample"><Documentation><UserDocu>Fixed.</UserDocu></Documentation></PythonExport></GenerateModel>`
}
