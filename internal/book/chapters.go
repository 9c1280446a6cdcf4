package book

// chapters is the authored table of contents. Order here is reading order.
var chapters = []Source{
	{"Introduction", "70%", "/introduction", "chapters/01_introduction.md"},
	{"Basic types", "100%", "/basic_types", "chapters/02_basic_types.md"},
	{"Data structures", "80%", "/data_structures", "chapters/03_data_structures.md"},
	{"Conditional structures", "95%", "/conditionals", "chapters/04_conditionals.md"},
	{"Functions and modules", "90%", "/functions_modules", "chapters/05_functions_modules.md"},
	{"Pattern matching", "70%", "/pattern_matching", "chapters/06_pattern_matching.md"},
	{"High-order functions", "90%", "/high_order_fun", "chapters/07_high_order_functions.md"},
	{"Lazy evaluation and streams", "80%", "/lazy_streams", "chapters/08_lazy_streams.md"},
	{"Hello outside world! Input and output", "75%", "/file_io", "chapters/09_file_io.md"},
	{"Modules and structs", "60%", "/modules_structs", "chapters/10_modules_structs.md"},
	{"Parallelism with processes", "90%", "/processes", "chapters/11_processes.md"},
	{"Supervisors and process abstractions", "5%", "/supervisors_abstractions", "chapters/12_supervisors_and_otp.md"},
	// Language tools is read before the application chapter even though
	// its file is numbered after it.
	{"Language tools", "40%", "/language_tools", "chapters/14_mix_hex_docs.md"},
	{"Composing an application", "50%", "/composing_an_application", "chapters/13_composing_an_application.md"},
	{"Drafts and ideas", "50%", "/drafts", "chapters/drafts_and_ideas.md"},
}

// Manifest returns a copy of the built-in chapter table
func Manifest() []Source {
	out := make([]Source, len(chapters))
	copy(out, chapters)
	return out
}
