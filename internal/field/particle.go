package field

// Particle is one point of the field. Particles are allocated in batch and
// never removed; when Age passes Lifespan the particle flickers back to a
// fresh alpha in place.
type Particle struct {
	X, Y   float64
	VX, VY float64

	Radius float64
	Color  RGB
	Alpha  float64

	Age      int
	Lifespan int
}

// Store owns the mutable particle set. Initialize and Reinitialize swap the
// whole backing slice in one assignment so a reader holding the previous
// slice never observes a half-built set.
type Store struct {
	p      []Particle
	count  int
	width  float64
	height float64
	seed   uint64
}

func NewStore(seed uint64) *Store {
	if seed == 0 {
		seed = 1
	}
	return &Store{seed: seed}
}

// Initialize replaces the particle set with count fresh particles spread
// uniformly over [0,width]x[0,height].
func (s *Store) Initialize(width, height float64, count int) {
	rr := NewRand(s.seed)
	s.seed = splitmix64(s.seed) // next init draws a different batch

	next := make([]Particle, count)
	for i := range next {
		next[i] = Particle{
			X:        rr.RangeF(0, width),
			Y:        rr.RangeF(0, height),
			VX:       rr.RangeF(-1, 1),
			VY:       rr.RangeF(-1, 1),
			Radius:   rr.RangeF(MinRadius, MaxRadius),
			Color:    Palette[rr.Intn(len(Palette))],
			Alpha:    rr.RangeF(MinAlpha, MaxAlpha),
			Age:      rr.Intn(MaxInitAge),
			Lifespan: MinLifespan + rr.Intn(MaxLifespan-MinLifespan),
		}
	}
	s.p = next
	s.count = count
	s.width = width
	s.height = height
}

// Reinitialize rebuilds the set at the last-known count, e.g. after a canvas
// resize. Particles from the old set that would land outside the new bounds
// are simply regenerated; nothing here can fail.
func (s *Store) Reinitialize(width, height float64) {
	count := s.count
	if count <= 0 {
		count = DefaultParticleCount
	}
	s.Initialize(width, height, count)
}

// Particles returns the live slice. Callers mutate it in place during a tick;
// the slice identity only changes on (re)initialization.
func (s *Store) Particles() []Particle { return s.p }

func (s *Store) Count() int { return s.count }

// Bounds returns the dimensions the store was last initialized with.
func (s *Store) Bounds() (w, h float64) { return s.width, s.height }

// splitmix64 is a fast, high-quality 64-bit mixer.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
