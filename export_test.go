// FILE: lixenwraith/repoconf/export_test.go
package repoconf

// reset drops the memoized registry so the next access rebuilds from disk.
func (s *Shared) reset() {
	s.reg = nil
}
