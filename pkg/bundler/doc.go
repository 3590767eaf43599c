// Package bundler plans and drives multi-target package builds. Each declared
// sub-module yields one build target per output format (ES module, CommonJS,
// type declarations); the resulting outputs are advertised through the package
// manifest's export map which is rewritten in place after a successful build.
package bundler
