// Package fleetname derives a deterministic, collision-resistant device name
// for the local machine and applies it to the operating system's identity
// settings. The name is built from the hardware model identifier and the
// trailing characters of the hardware UUID, so a fleet of machines can be
// named without central coordination while staying human-traceable.
//
// # Naming scheme
//
// The model identifier is cleaned by removing "/" characters and joined with
// the last [DefaultSuffixDigits] characters of the hardware UUID:
//
//	model "Z1AU001HXB/A" + UUID "….653894A"  →  "Z1AU001HXBA-653894A"
//
// The display name keeps that form. The hostname variant additionally strips
// every character that is not valid in a DNS-style hostname label, including
// the "-" separator itself.
//
// # Quick start
//
//	result, err := fleetname.New().Run(ctx)
//	if err != nil {
//		os.Exit(fleetname.ExitCode(err))
//	}
//	fmt.Println("device named", result.CandidateName)
//
// Run executes a single sequential pass: read the hardware metadata, derive
// the two name forms, validate the result and the process privilege, and
// apply the identity. Every failure is terminal; [ExitCode] maps the error
// taxonomy to the exit codes provisioning workflows rely on.
//
// # Hardware sources and identity slots
//
// Each platform reads the model identifier and hardware UUID from its
// hardware-description facility (system_profiler and ioreg on macOS, DMI
// sysfs on Linux, wmic and PowerShell CIM on Windows) and applies the result
// to its identity slots (scutil, hostnamectl, Rename-Computer). The display
// slot receives the unsanitized candidate; the hostname slots receive the
// sanitized form.
//
// # Testing
//
// System interaction goes through small interfaces: [CommandExecutor] for
// command execution, [HardwareReader] for metadata, [IdentityApplier] for
// applying the result, and an explicit privilege check. Each can be replaced
// via the Namer's With* methods for deterministic tests.
package fleetname
