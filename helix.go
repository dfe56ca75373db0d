// Package helix implements a reversible byte-stream transform for grayscale image data.
// The transform combines DNA-style 2-bit symbol encoding, protein-style circular
// permutation of symbol groups, logistic-map spatial scrambling and a two-pass keyed
// diffusion chain. The metrics sub-package quantifies how well the transform hides the
// statistical structure of the input.
package helix

// Version of the helix Go implementation.
const Version = "1.0.0"

// API summary:
//
// Transform:
//   - pipeline.Encrypt(data, dnaRounds, proteinRounds, r, x0) - Encrypt a byte array
//   - pipeline.Decrypt(data, dnaRounds, proteinRounds, r, x0) - Invert Encrypt
//   - pipeline.EncryptParams(data, params) - Validate params, then encrypt
//   - pipeline.EncryptBatch(ctx, inputs, params, workers) - Encrypt independent buffers in parallel
//
// Evaluation:
//   - metrics.Evaluate(original, encrypted, decrypted, encryptFn, ...) - Full metric report
//   - metrics.Entropy, metrics.Correlation, metrics.NPCRUACI, metrics.MSE, metrics.PSNR, metrics.SSIM
//
// Parameters:
//   - core.GetParams(profile) - Parameters for a named profile
//   - core.ValidateParams(params) - Reject round counts and chaos parameters outside the chaotic regime
//   - core.DeriveParams(passphrase, salt, profile) - Derive chaos parameters from a passphrase
//
// Containers:
//   - envelope.Seal(ciphertext, width, height, params) - Bind ciphertext to its shape and parameters
//   - envelope.Open(data, params) - Verify and unwrap a sealed ciphertext
