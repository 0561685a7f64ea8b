package snapshot

// ReleaseStats reports what a Release freed.
type ReleaseStats struct {
	Freed Counts
}

// Release frees every entity of the snapshot exactly once and drops every
// link, including the ones shared between entities. The Design is empty
// afterwards. Release on a nil or already released Design does nothing and
// reports zero counts.
func (d *Design) Release() ReleaseStats {
	if d == nil || d.arena == nil {
		return ReleaseStats{}
	}
	freed := d.arena.release()
	*d = Design{}
	return ReleaseStats{Freed: freed}
}
