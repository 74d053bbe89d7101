package assertion

// Label is the C2PA assertion label this package owns, shared by both the
// v1 and v2 wire shapes; the version distinction is carried by the
// surrounding manifest container, not by the label string, per spec §3.
const Label = "c2pa.hash.bmff"

// DefaultAlg is used whenever neither the assertion nor a caller-supplied
// hint names an algorithm.
const DefaultAlg = "sha256"

// DefaultMaxProofDepth is the default maximum proof depth callers pass to
// the generator, bounding how many Merkle proof entries it reserves space
// for. Verifiers do not consult it; they derive the stored depth from the
// committed row's length. Per spec §9 this is a tunable default, not a
// protocol constant.
const DefaultMaxProofDepth = 4

// BmffHash is the in-memory form of the BMFF-based hash assertion. It owns
// its exclusion, hash, and merkle vectors; callers never hold references
// into the asset byte stream after a call returns (spec §3 "Ownership").
type BmffHash struct {
	exclusions []ExclusionsMap
	alg        *string
	hash       []byte
	merkle     []MerkleMap
	name       *string
	url        *string

	// bmffVersion and path are never serialized: bmffVersion is carried by
	// the surrounding manifest container (spec §3 "Invariant"), and path
	// exists purely so RegenHash can be called with no arguments after a
	// GenHash, mirroring the original Rust BmffHash::regen_hash.
	bmffVersion int
	path        string
}

// New builds a BmffHash with no exclusions and no hash yet. alg may be
// empty, in which case EffectiveAlg falls back to DefaultAlg. url marks the
// assertion as a remote hash when non-nil.
func New(name, alg string, url *string) *BmffHash {
	h := &BmffHash{
		name:        stringPtrOrNil(name),
		url:         url,
		bmffVersion: 1,
	}
	if alg != "" {
		h.alg = &alg
	}
	return h
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Exclusions returns the assertion's exclusion rules.
func (h *BmffHash) Exclusions() []ExclusionsMap { return h.exclusions }

// SetExclusions replaces the assertion's exclusion rules wholesale.
func (h *BmffHash) SetExclusions(excl []ExclusionsMap) { h.exclusions = excl }

// AddExclusion appends a single exclusion rule, preserving insertion order
// (meaningful only for resolution determinism, per spec §3).
func (h *BmffHash) AddExclusion(e ExclusionsMap) { h.exclusions = append(h.exclusions, e) }

// Alg returns the assertion's explicit algorithm, or nil if unset.
func (h *BmffHash) Alg() *string { return h.alg }

// SetAlg sets the assertion's explicit algorithm identifier.
func (h *BmffHash) SetAlg(alg string) { h.alg = &alg }

// EffectiveAlg resolves the algorithm to actually hash with: the
// assertion's own alg always wins over a caller-supplied hint, which in
// turn wins over DefaultAlg (spec §8 seed scenario 6).
func (h *BmffHash) EffectiveAlg(hint *string) string {
	if h.alg != nil {
		return *h.alg
	}
	if hint != nil && *hint != "" {
		return *hint
	}
	return DefaultAlg
}

// Hash returns the file-level digest, or nil if this assertion uses Merkle
// hashing instead.
func (h *BmffHash) Hash() []byte { return h.hash }

// SetHash sets the file-level digest.
func (h *BmffHash) SetHash(hash []byte) { h.hash = hash }

// Merkle returns the per-track/per-asset Merkle summaries, or nil.
func (h *BmffHash) Merkle() []MerkleMap { return h.merkle }

// SetMerkle replaces the Merkle summaries wholesale.
func (h *BmffHash) SetMerkle(m []MerkleMap) { h.merkle = m }

// Name returns the assertion's human label, if any.
func (h *BmffHash) Name() *string { return h.name }

// URL returns the remote-hash URL, if any.
func (h *BmffHash) URL() *string { return h.url }

// IsRemoteHash reports whether this assertion is a remote (URL-addressed)
// hash, which this module refuses to verify locally (spec §1 Non-goals).
func (h *BmffHash) IsRemoteHash() bool { return h.url != nil }

// BmffVersion returns the v1/v2 exclusion-offset semantics in effect.
func (h *BmffHash) BmffVersion() int { return h.bmffVersion }

// SetBmffVersion sets the v1/v2 exclusion-offset semantics. This is set by
// the surrounding manifest container when an assertion is decoded; it is
// never part of the CBOR payload itself.
func (h *BmffHash) SetBmffVersion(v int) { h.bmffVersion = v }

// Path returns the asset path most recently passed to GenHash, so a later
// RegenHash call can re-open the same asset.
func (h *BmffHash) Path() string { return h.path }

// SetPath records the asset path for a later RegenHash call.
func (h *BmffHash) SetPath(p string) { h.path = p }
