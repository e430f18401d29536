package text

// CommonPrefix returns the longest prefix shared by all of the given
// sequences. It is used to collapse multiple detected Python modules to
// their shared namespace package (e.g. "ns.a" and "ns.b" collapse to "ns").
// Returns nil when the sequences share no leading elements.
func CommonPrefix(seqs ...[]string) []string {
	if len(seqs) == 0 {
		return nil
	}
	prefix := seqs[0]
	for _, seq := range seqs[1:] {
		n := 0
		for n < len(prefix) && n < len(seq) && prefix[n] == seq[n] {
			n++
		}
		prefix = prefix[:n]
		if len(prefix) == 0 {
			return nil
		}
	}
	return prefix
}
