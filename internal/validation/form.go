package validation

// Field binds a form field name to its rule.
type Field struct {
	Name string
	Rule Rule
}

// Form holds the values and per-field results of one screen. A fresh Form is
// built per submission; nothing is shared between requests.
type Form struct {
	fields  []Field
	values  map[string]string
	results map[string]Result
}

func NewForm(fields ...Field) *Form {
	return &Form{
		fields:  fields,
		values:  make(map[string]string, len(fields)),
		results: make(map[string]Result, len(fields)),
	}
}

// Set stores value and clears any previous result for the field.
func (f *Form) Set(name, value string) {
	f.values[name] = value
	delete(f.results, name)
}

func (f *Form) Value(name string) string {
	return f.values[name]
}

func (f *Form) Result(name string) Result {
	if r, ok := f.results[name]; ok {
		return r
	}
	return OK()
}

// Validate runs every rule and reports whether the form may be submitted.
func (f *Form) Validate() bool {
	for _, field := range f.fields {
		f.results[field.Name] = field.Rule(f.values[field.Name])
	}
	return !f.Blocked()
}

// Blocked is true while any field carries an error.
func (f *Form) Blocked() bool {
	for _, r := range f.results {
		if !r.Valid() {
			return true
		}
	}
	return false
}

// Errors returns the failing fields and their messages.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string)
	for name, r := range f.results {
		if !r.Valid() {
			out[name] = r.Message()
		}
	}
	return out
}

func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}
