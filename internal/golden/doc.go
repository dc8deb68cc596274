// Package golden is the correctness oracle for the CIC decimator.
//
// Expected impulse and step samples come from closed-form expressions in the
// structural parameters M (stages), N (differential delay) and R (decimation
// ratio), evaluated exactly with math/big. The harness never re-simulates the
// filter to decide what "correct" means.
//
// M and N are discovered from the stage handles a device exposes. R is read
// live from the decimation counter because a build may select or correct it
// at run time.
package golden
