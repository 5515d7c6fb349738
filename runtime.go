// Completion: 100% - native runtime function registry
package loom

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// The native runtime is a C static library linked into every
// executable. Each entry here declares one extern symbol; the call
// name is what source programs use. All integer and handle values are
// 64-bit words, strings cross the boundary as (pointer, length)
// pairs, and floats are doubles.
type runtimeDef struct {
	name   string // call name in source programs
	symbol string // extern symbol in libloom_runtime.a
	params []types.Type
	ret    types.Type
}

var (
	i64T  = types.I64
	f64T  = types.Double
	ptrT  = types.NewPointer(types.I8)
	voidT = types.Void
)

var runtimeDefs = []runtimeDef{
	// Printing. println appends a newline, print does not; the e
	// variants write to stderr.
	{"print_int", "loom_print_int", []types.Type{i64T}, voidT},
	{"print_float", "loom_print_float", []types.Type{f64T}, voidT},
	{"print_bool", "loom_print_bool", []types.Type{i64T}, voidT},
	{"print_str", "loom_print_str", []types.Type{ptrT, i64T}, voidT},
	{"print_newline", "loom_print_newline", nil, voidT},
	{"eprint_int", "loom_eprint_int", []types.Type{i64T}, voidT},
	{"eprint_float", "loom_eprint_float", []types.Type{f64T}, voidT},
	{"eprint_bool", "loom_eprint_bool", []types.Type{i64T}, voidT},
	{"eprint_str", "loom_eprint_str", []types.Type{ptrT, i64T}, voidT},
	{"eprint_newline", "loom_eprint_newline", nil, voidT},

	// Heap. Allocation never returns NULL; the runtime aborts on
	// exhaustion instead.
	{"alloc", "loom_alloc", []types.Type{i64T}, ptrT},
	{"free", "loom_free", []types.Type{ptrT}, voidT},

	// Strings. A string value is a heap {data, len, cap} header;
	// functions returning a string return the header pointer.
	{"string_from_static", "loom_string_from_static", []types.Type{ptrT, i64T}, ptrT},
	{"string_concat", "loom_string_concat", []types.Type{ptrT, i64T, ptrT, i64T}, ptrT},
	{"string_eq", "loom_string_eq", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"len", "loom_string_len", []types.Type{ptrT, i64T}, i64T},
	{"is_empty", "loom_string_is_empty", []types.Type{ptrT, i64T}, i64T},
	{"upper", "loom_string_upper", []types.Type{ptrT, i64T}, ptrT},
	{"lower", "loom_string_lower", []types.Type{ptrT, i64T}, ptrT},
	{"trim", "loom_string_trim", []types.Type{ptrT, i64T}, ptrT},
	{"reverse", "loom_string_reverse", []types.Type{ptrT, i64T}, ptrT},
	{"slice", "loom_string_slice", []types.Type{ptrT, i64T, i64T, i64T}, ptrT},
	{"contains", "loom_string_contains", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"starts_with", "loom_string_starts_with", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"ends_with", "loom_string_ends_with", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"index_of", "loom_string_index_of", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"replace", "loom_string_replace", []types.Type{ptrT, i64T, ptrT, i64T, ptrT, i64T}, ptrT},
	{"repeat", "loom_string_repeat", []types.Type{ptrT, i64T, i64T}, ptrT},
	{"char_at", "loom_string_char_at", []types.Type{ptrT, i64T, i64T}, ptrT},
	{"int_to_string", "loom_int_to_string", []types.Type{i64T}, ptrT},
	{"float_to_string", "loom_float_to_string", []types.Type{f64T}, ptrT},
	{"parse_int", "loom_parse_int", []types.Type{ptrT, i64T}, i64T},
	{"parse_float", "loom_parse_float", []types.Type{ptrT, i64T}, f64T},

	// Regular expressions, POSIX ERE semantics.
	{"regex_match", "loom_regex_match", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"regex_find", "loom_regex_find", []types.Type{ptrT, i64T, ptrT, i64T}, ptrT},
	{"regex_replace", "loom_regex_replace", []types.Type{ptrT, i64T, ptrT, i64T, ptrT, i64T}, ptrT},
	{"regex_replace_all", "loom_regex_replace_all", []types.Type{ptrT, i64T, ptrT, i64T, ptrT, i64T}, ptrT},
	{"regex_count", "loom_regex_count", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},

	// Integer math.
	{"abs", "loom_abs", []types.Type{i64T}, i64T},
	{"min", "loom_min", []types.Type{i64T, i64T}, i64T},
	{"max", "loom_max", []types.Type{i64T, i64T}, i64T},
	{"clamp", "loom_clamp", []types.Type{i64T, i64T, i64T}, i64T},

	// Float math on doubles.
	{"floor", "loom_floor", []types.Type{f64T}, f64T},
	{"ceil", "loom_ceil", []types.Type{f64T}, f64T},
	{"round", "loom_round", []types.Type{f64T}, f64T},
	{"sqrt", "loom_sqrt", []types.Type{f64T}, f64T},
	{"pow", "loom_pow", []types.Type{f64T, f64T}, f64T},
	{"log", "loom_log", []types.Type{f64T}, f64T},
	{"log10", "loom_log10", []types.Type{f64T}, f64T},
	{"exp", "loom_exp", []types.Type{f64T}, f64T},
	{"sin", "loom_sin", []types.Type{f64T}, f64T},
	{"cos", "loom_cos", []types.Type{f64T}, f64T},
	{"tan", "loom_tan", []types.Type{f64T}, f64T},
	{"asin", "loom_asin", []types.Type{f64T}, f64T},
	{"acos", "loom_acos", []types.Type{f64T}, f64T},
	{"atan", "loom_atan", []types.Type{f64T}, f64T},
	{"atan2", "loom_atan2", []types.Type{f64T, f64T}, f64T},
	{"random_int", "loom_random_int", []types.Type{i64T, i64T}, i64T},
	{"random_float", "loom_random_float", nil, f64T},
	{"random_seed", "loom_random_seed", []types.Type{i64T}, voidT},

	// Channels: a bounded ring buffer of words guarded by one mutex
	// and two condition variables. Send blocks while full, receive
	// blocks while empty; receive from a closed empty channel is zero.
	{"channel_new", "loom_channel_new", []types.Type{i64T}, ptrT},
	{"channel_send", "loom_channel_send", []types.Type{ptrT, i64T}, voidT},
	{"channel_recv", "loom_channel_recv", []types.Type{ptrT}, i64T},
	{"channel_close", "loom_channel_close", []types.Type{ptrT}, voidT},
	{"channel_has_data", "loom_channel_has_data", []types.Type{ptrT}, i64T},
	{"channel_is_closed", "loom_channel_is_closed", []types.Type{ptrT}, i64T},

	// Threads. spawn is fire and forget; spawn_joinable returns a
	// handle for join.
	{"spawn_raw", "loom_spawn", []types.Type{ptrT}, i64T},
	{"spawn_joinable", "loom_spawn_joinable", []types.Type{ptrT}, ptrT},
	{"join", "loom_join", []types.Type{ptrT}, i64T},
	{"sleep_ms", "loom_sleep_ms", []types.Type{i64T}, voidT},
	{"time_now", "loom_time_now", nil, i64T},
	{"time_monotonic", "loom_time_monotonic", nil, i64T},

	// Error flag, one slot per thread. take returns the current
	// error value and clears the flag.
	{"error_raise", "loom_error_raise", []types.Type{i64T}, voidT},
	{"error_pending", "loom_error_pending", nil, i64T},
	{"error_take", "loom_error_take", nil, i64T},
	{"error_clear", "loom_error_clear", nil, voidT},

	// Files and environment.
	{"read_file", "loom_read_file", []types.Type{ptrT, i64T}, ptrT},
	{"write_file", "loom_write_file", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"append_file", "loom_append_file", []types.Type{ptrT, i64T, ptrT, i64T}, i64T},
	{"file_exists", "loom_file_exists", []types.Type{ptrT, i64T}, i64T},
	{"env_get", "loom_env_get", []types.Type{ptrT, i64T}, ptrT},

	// Test support.
	{"test_start", "loom_test_start", []types.Type{ptrT, i64T}, voidT},
	{"test_pass", "loom_test_pass", nil, voidT},
	{"test_fail", "loom_test_fail", []types.Type{ptrT, i64T}, voidT},
	{"assert", "loom_assert", []types.Type{i64T}, i64T},
	{"assert_eq", "loom_assert_eq", []types.Type{i64T, i64T}, i64T},
	{"assert_ne", "loom_assert_ne", []types.Type{i64T, i64T}, i64T},
	{"assert_gt", "loom_assert_gt", []types.Type{i64T, i64T}, i64T},
	{"assert_ge", "loom_assert_ge", []types.Type{i64T, i64T}, i64T},
	{"assert_lt", "loom_assert_lt", []types.Type{i64T, i64T}, i64T},
	{"assert_le", "loom_assert_le", []types.Type{i64T, i64T}, i64T},
	{"test_summary", "loom_test_summary", nil, i64T},
	{"test_section", "loom_test_section", []types.Type{ptrT, i64T}, voidT},

	// Process.
	{"exit", "loom_exit", []types.Type{i64T}, voidT},
}

// declareRuntime declares every runtime primitive in the module and
// returns them keyed by call name. User functions later shadow
// entries with the same name.
func declareRuntime(m *ir.Module) map[string]*ir.Func {
	funcs := make(map[string]*ir.Func, len(runtimeDefs))
	for _, def := range runtimeDefs {
		params := make([]*ir.Param, len(def.params))
		for i, pt := range def.params {
			params[i] = ir.NewParam("", pt)
		}
		f := m.NewFunc(def.symbol, def.ret, params...)
		funcs[def.name] = f
	}
	return funcs
}

// isFloatType reports whether t is the double type. Signatures are
// inspected at call sites to decide int-to-float coercion, so the
// registry needs no separate float table.
func isFloatType(t types.Type) bool {
	_, ok := t.(*types.FloatType)
	return ok
}
