package task

type PatchOption func(*Patch)

func WithTitle(title string) PatchOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithDescription(description string) PatchOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

func WithCategory(category string) PatchOption {
	return func(p *Patch) {
		p.Category = &category
	}
}

func WithDate(date string) PatchOption {
	return func(p *Patch) {
		p.Date = &date
	}
}

func WithUserID(userID string) PatchOption {
	return func(p *Patch) {
		p.UserID = &userID
	}
}

// NewPatch собирает патч из опций, nil опции пропускаются
func NewPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&p)
	}
	return p
}
