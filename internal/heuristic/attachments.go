package heuristic

import (
	"strings"

	"github.com/phishlook/phishlook/internal/core"
)

// Size heuristics: a tiny executable is usually a dropper, an oversized
// document is usually padding to evade scanners.
const (
	tinyExecutableBytes = 10 * 1024
	hugeDocumentBytes   = 50 * 1024 * 1024
)

// Extension tables are fixed, process-wide, read-only configuration.
var (
	dangerousExtensions = []string{
		".exe", ".scr", ".bat", ".cmd", ".com", ".pif", ".msi", ".msp",
		".jar", ".hta", ".cpl", ".gadget", ".app", ".deb", ".dmg",
	}

	archiveExtensions = []string{
		".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".iso",
	}

	scriptExtensions = []string{
		".js", ".vbs", ".ps1", ".psm1", ".wsf", ".wsh", ".sh", ".py",
	}

	suspiciousNameKeywords = []string{
		"invoice", "urgent", "payment", "receipt", "refund", "order",
		"statement", "delivery", "shipment", "scan", "fax", "confirmation",
		"account", "tax", "bonus",
	}

	documentExtensions = []string{
		".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt",
	}

	// Token forms (no dot) used by the double-extension check.
	documentTokens = []string{
		"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "jpg", "png",
	}
	executableTokens = []string{
		"exe", "scr", "bat", "cmd", "com", "pif", "msi", "js", "vbs", "jar",
	}
)

// AnalyzeAttachments classifies each attachment independently, aggregating
// every triggered reason. The risk level only ever upgrades within one file.
// An empty attachment list yields an all-zero analysis.
func AnalyzeAttachments(attachments []core.Attachment) core.AttachmentAnalysis {
	var analysis core.AttachmentAnalysis
	if len(attachments) == 0 {
		return analysis
	}

	for _, att := range attachments {
		verdict := inspectAttachment(att)
		analysis.Attachments = append(analysis.Attachments, verdict)
		analysis.TotalCount++
		if verdict.IsSuspicious {
			analysis.SuspiciousCount++
		}
	}

	score := float64(analysis.SuspiciousCount) / float64(analysis.TotalCount)
	if score > 1 {
		score = 1
	}
	analysis.Suspicion = score

	return analysis
}

func inspectAttachment(att core.Attachment) core.AttachmentVerdict {
	name := att.Name
	if name == "" {
		name = "unknown"
	}

	verdict := core.AttachmentVerdict{
		Filename:    name,
		Size:        att.Size,
		ContentType: att.ContentType,
		RiskLevel:   core.RiskLow,
	}
	lower := strings.ToLower(name)

	if hasAnySuffix(lower, dangerousExtensions) {
		verdict.Reasons = append(verdict.Reasons, core.AttachReasonDangerousExtension)
		verdict.RiskLevel = verdict.RiskLevel.Upgrade(core.RiskHigh)
	}

	if hasAnySuffix(lower, archiveExtensions) {
		verdict.Reasons = append(verdict.Reasons, core.AttachReasonArchiveFile)
		verdict.RiskLevel = verdict.RiskLevel.Upgrade(core.RiskMedium)
	}

	if hasAnySuffix(lower, scriptExtensions) {
		verdict.Reasons = append(verdict.Reasons, core.AttachReasonScriptFile)
		verdict.RiskLevel = verdict.RiskLevel.Upgrade(core.RiskHigh)
	}

	if containsAny(lower, suspiciousNameKeywords) {
		verdict.Reasons = append(verdict.Reasons, core.AttachReasonSuspiciousName)
		verdict.RiskLevel = verdict.RiskLevel.Upgrade(core.RiskMedium)
	}

	if hasDoubleExtension(lower) {
		verdict.Reasons = append(verdict.Reasons, core.AttachReasonDoubleExtension)
		verdict.RiskLevel = verdict.RiskLevel.Upgrade(core.RiskHigh)
	}

	if hasSuspiciousSize(lower, att.Size) {
		verdict.Reasons = append(verdict.Reasons, core.AttachReasonSuspiciousSize)
		verdict.RiskLevel = verdict.RiskLevel.Upgrade(core.RiskMedium)
	}

	verdict.IsSuspicious = len(verdict.Reasons) > 0
	return verdict
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// hasDoubleExtension detects the document-then-executable trick, e.g.
// report.pdf.exe. Requires at least three dot-separated segments.
func hasDoubleExtension(lowerName string) bool {
	parts := strings.Split(lowerName, ".")
	if len(parts) < 3 {
		return false
	}

	inner := parts[len(parts)-2]
	final := parts[len(parts)-1]

	innerIsDocument := false
	for _, tok := range documentTokens {
		if inner == tok {
			innerIsDocument = true
			break
		}
	}
	if !innerIsDocument {
		return false
	}

	for _, tok := range executableTokens {
		if final == tok {
			return true
		}
	}
	return false
}

func hasSuspiciousSize(lowerName string, size int64) bool {
	if hasAnySuffix(lowerName, dangerousExtensions) && size < tinyExecutableBytes {
		return true
	}
	if hasAnySuffix(lowerName, documentExtensions) && size > hugeDocumentBytes {
		return true
	}
	return false
}
