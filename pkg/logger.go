package density

type Logger interface {
	Info(message string, module string)
	Warning(message string, module string)
	Error(string)
}

type silentLogger struct{}

func (silentLogger) Info(string, string)    {}
func (silentLogger) Warning(string, string) {}
func (silentLogger) Error(string)           {}

var logger Logger = silentLogger{}

func SetLogger(l Logger) {
	if l == nil {
		l = silentLogger{}
	}
	logger = l
}

var verbosity int

// SetVerbosity sets how chatty the library is. 0 only reports problems,
// values above 2 log every query and strip.
func SetVerbosity(v int) {
	verbosity = v
}
