// Package emit serializes the C++ template model to source text.
//
// It makes no semantic decisions: every name, member and pattern was
// fixed during template generation, and this package only prints them
// in model order behind a fixed include preamble. The one piece of C++
// knowledge living here is the spelling of dependent member reads:
// `typename` before type members and `template` before template
// members.
package emit
