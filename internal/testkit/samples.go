package testkit

// Sample programs. Basic stays inside the translated subset; Blink and
// Serial use locals and loops and need the comment fallback.
const (
	BasicSource = `using MicroSystem;
using MicroSystem.Controllers;
using MicroSystem.Communications;

namespace SampleProject
{
    class Program
    {
        static void Main()
        {
            SerialController.GetDefault().OpenConnection(115200);
            Console.WriteLine("Hello, World!", 13);
        }
    }
}
`

	BlinkSource = `using System.Device.Gpio;
using System.Threading;

namespace BlinkSample
{
    class Program
    {
        public static void Main()
        {
            const int LedPin = 17;
            const int LightTimeInMilliseconds = 1000;

            //  Get an instance of the GPIO controller
            GpioController controller = new GpioController();
            controller.OpenPin(LedPin, PinMode.Output);

            while (true)
            {
                controller.Write(LedPin, PinValue.High);
                Thread.Sleep(LightTimeInMilliseconds);
            }
        }
    }
}
`

	SerialSource = `using System.IO.Ports;
using System.Threading;

namespace SerialSample
{
    class Program
    {
        public static void Main()
        {
            SerialPort sp = new SerialPort("COM1", 9600);
            sp.Open();

            while (true)
            {
                sp.WriteLine("Hello World!");
                Thread.Sleep(3000);
            }
        }
    }
}
`

	// GreeterSource exercises parameters, arrays and instance access.
	GreeterSource = `using System;

namespace Demo.App
{
    public class Greeter
    {
        private static void Say(string text, int[] codes)
        {
            Console.WriteLine(text);
            codes.Clear();
        }

        public static void Main()
        {
            Say("hi", null);
        }
    }
}
`
)
