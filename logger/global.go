package logger

var global = New("condorsub")

// Configure configures the global logger.
func Configure(c Config) {
	global.Configure(c)
}

// Sub returns a logger sharing the global logger's level, formatter and
// output, with the given namespace.
func Sub(ns string, args ...interface{}) *Logger {
	return global.WithFields(append([]interface{}{"ns", ns}, args...)...)
}
