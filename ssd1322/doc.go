// Package ssd1322 controls a SSD1322 OLED display via SPI.
//
// The SSD1322 is a 4-bit grayscale OLED controller supporting up to 480×128
// pixels. moonclock drives a 256×64 panel with it; the text surface composes
// frames in an image4bit.HorizontalNibble and hands them to Dev.Draw.
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select (or GND if always selected)
//	RES         → Optional: GPIO for hardware reset
//
// # Basic Usage
//
//	if _, err := host.Init(); err != nil {
//		log.Fatal(err)
//	}
//	port, _ := spireg.Open("")
//	dev, _ := ssd1322.NewSPI(port, gpioreg.ByName("GPIO25"), &ssd1322.Opts{
//		W:   256,
//		H:   64,
//		RST: gpioreg.ByName("GPIO24"), // optional
//	})
//	defer dev.Halt()
//
//	img := image4bit.NewHorizontalNibble(dev.Bounds())
//	img.SetGray4(10, 10, image4bit.Gray4{Y: 15})
//	dev.Draw(dev.Bounds(), img, image.Point{})
//
// When RST is set the driver pulls it low for 200ms then high for 200ms
// before sending the init sequence; otherwise it relies on power-on reset.
//
// # Differential Updates
//
// Draw keeps a copy of what the controller RAM holds and only streams the
// bounding rectangle of changed pixels, widened to the 4-pixel column groups
// the controller addresses. LastUpdate reports that rectangle and BytesSent
// the running pixel byte count, which is what a slow link cares about.
// Write always sends a full frame.
//
// # Display Resolution
//
//	Opts{W: 256, H: 64}  // most common
//	Opts{W: 128, H: 64}
//
// Width must be even and ≤480, height ≤128, the panel is centered in the
// 480-column RAM. The SPI clock defaults to 10MHz (Opts.Hz).
//
// # Datasheet
//
// https://www.displayfuture.com/Display/datasheet/controller/SSD1322.pdf
package ssd1322
