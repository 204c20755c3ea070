package commands

import (
	"fmt"
	"os"
)

// dockerRunPrefix mounts the repository at /src and runs as the invoking
// user so that files written by the container keep their owner.
func (b *Builder) dockerRunPrefix() []string {
	args := []string{"docker", "run", "--rm"}
	if uid, gid := os.Getuid(), os.Getgid(); uid >= 0 && gid >= 0 {
		args = append(args, "-u", fmt.Sprintf("%d:%d", uid, gid))
	}
	return append(args, "-v", b.repoRoot+":/src:rw,Z", "--workdir", "/src")
}
