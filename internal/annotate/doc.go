// Package annotate renders plate frames with their sampled wells marked.
//
// Annotate draws each well's scan region as an outline with its label above
// it, over the frame mapped through a two-colour intensity ramp, and can add
// a colour bar showing the frame's intensity range. PlotProfiles charts the
// aligned profiles themselves.
//
// Figures are written with Save, which picks the encoder from the file
// extension and replaces the destination atomically.
package annotate
