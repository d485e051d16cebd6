package gui

import (
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const aboutText = "WHAT IS VR DIMENSION?\n\n" +
	"An application to capture one eye of a VR display for Virtual Desktop users " +
	"without casting from the headset to stream a single view.\n\n" +
	"WHY WAS THIS APPLICATION CREATED?\n\n" +
	"No existing solution allowed the preferred codec and OpenXR VDXR options " +
	"without tasking the VR headset. VR Dimension started as a proof of concept.\n\n" +
	"LET THE BLUE SKY BE YOUR CANVAS, PAINT YOUR DREAMS. ~SIXX"

const avText = "VR Dimension may trigger false positive warnings due to screen capture technology.\n\n" +
	"• Packed executables sometimes trigger false positives\n" +
	"• No malicious code exists in this application"

var supportLinks = []struct{ label, target string }{
	{"BUY ME A COFFEE", "https://streamelements.com/survivewithsixx/tip"},
	{"VISIT MY TWITCH", "https://www.twitch.tv/survivewithsixx"},
	{"JOIN DISCORD", "https://discord.gg/WuHNTWsyHt"},
}

func wrapped(text string) *widget.Label {
	l := widget.NewLabel(text)
	l.Wrapping = fyne.TextWrapWord
	return l
}

func aboutContent() fyne.CanvasObject {
	links := container.NewHBox()
	for _, l := range supportLinks {
		u, err := url.Parse(l.target)
		if err != nil {
			continue
		}
		links.Add(widget.NewHyperlink(l.label, u))
	}
	title := widget.NewLabelWithStyle("SUPPORT THE CREATOR", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	return container.NewVBox(title, container.NewCenter(links), widget.NewSeparator(), wrapped(aboutText))
}

func (u *UI) showAbout() {
	d := dialog.NewCustom("ABOUT VR DIMENSION", "Close", aboutContent(), u.win)
	d.Resize(fyne.NewSize(520, 420))
	d.Show()
}

func (u *UI) showAVInfo() {
	title := widget.NewLabelWithStyle("⚠️ ANTIVIRUS INFORMATION ⚠️", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	d := dialog.NewCustom("Antivirus Information", "Close", container.NewVBox(title, wrapped(avText)), u.win)
	d.Resize(fyne.NewSize(560, 280))
	d.Show()
}
